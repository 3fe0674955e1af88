// Package main provides the wordfreq command line tool.
//
// Usage:
//
//	wordfreq analyze <url>
//	wordfreq analyze --json --top 10 <url>
package main

func main() {
	Execute()
}
