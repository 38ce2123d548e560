package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polygen/polygen/source"
)

func TestLineColAndPosRoundTrip(t *testing.T) {
	s := source.New("", []byte("0\n2\n4\n6789abcde\ng\ni\n"))

	line, col := s.LineCol(9)
	assert.Equal(t, 4, line)
	assert.Equal(t, 4, col)
	assert.Equal(t, 9, s.Pos(4, 4))

	line, col = s.LineCol(20)
	assert.Equal(t, 7, line)
	assert.Equal(t, 1, col)
}

func TestQueueSkipResumesSuspendedSource(t *testing.T) {
	q := source.NewQueue().Append(src("bar"))
	q.Skip(2)
	c, p := q.ContentPos()
	assert.Equal(t, "bar", string(c))
	assert.Equal(t, 2, p)

	q.Prepend(src("foo"))
	c, p = q.ContentPos()
	assert.Equal(t, "foo", string(c))
	assert.Equal(t, 0, p)

	q.Skip(4)
	c, p = q.ContentPos()
	assert.Equal(t, "bar", string(c))
	assert.Equal(t, 2, p)
}

func TestQueueSeekAndRewind(t *testing.T) {
	q := source.NewQueue().Append(src("foo"))
	q.Seek(4)
	assert.Equal(t, 3, q.Pos())
	assert.True(t, q.IsEmpty())

	q.Seek(2)
	assert.Equal(t, 2, q.Pos())
	assert.False(t, q.IsEmpty())

	q.Skip(4)
	assert.Equal(t, 3, q.Pos())
	assert.True(t, q.IsEmpty())

	q.Rewind(2)
	assert.Equal(t, 1, q.Pos())
	assert.False(t, q.IsEmpty())
}

func TestQueueOrderAcrossAppendAndPrepend(t *testing.T) {
	q := source.NewQueue()
	q.Append(src("bar")).Append(src("baz")).Prepend(src("foo"))
	assert.Equal(t, []string{"foo", "bar", "baz"}, sourceChain(q))
	assert.True(t, q.IsEmpty())
	assert.Equal(t, "baz", string(q.Source().Content()))
}

func TestQueueGrowsPastInitialCapacity(t *testing.T) {
	q := source.NewQueue()
	q.Append(src("c")).Append(src("d")).Append(src("e")).Append(src("f")).
		Append(src("g")).Prepend(src("b")).Append(src("h")).Prepend(src("a"))
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, sourceChain(q))
}

func TestQueueTracksEmptySources(t *testing.T) {
	q := source.NewQueue()
	assert.Nil(t, q.Source())

	q.Append(emptySrc("foo"))
	assert.Equal(t, "foo", q.Source().Name())

	q.Prepend(emptySrc("bar"))
	assert.Equal(t, "bar", q.Source().Name())

	q.Append(emptySrc("baz"))
	assert.Equal(t, "bar", q.Source().Name())
}

func src(content string) *source.Source {
	return source.New(content, []byte(content))
}

func emptySrc(name string) *source.Source {
	return source.New(name, []byte{})
}

func sourceChain(q *source.Queue) []string {
	var res []string
	for {
		content, pos := q.ContentPos()
		rest := string(content[pos:])
		if rest == "" {
			return res
		}
		res = append(res, rest)
		q.Skip(len(rest))
	}
}
