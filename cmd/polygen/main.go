// Command polygen drives the grammar-to-parser pipeline: read a
// grammar, preprocess it, run it through the modifier passes, emit a
// backend's source fragments and splice them into a skeleton, or run
// the backend equivalency suite against already-generated parsers.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
