// Package observation parses labeled 2-D observations from a line-oriented
// text stream.
//
// Each line holds whitespace-separated tokens "<id> <x> <y>". The id is a
// signed 32-bit integer class label; x and y are real numbers in any decimal
// or exponential form accepted by strconv.ParseFloat. Tokens after the third
// are ignored.
//
// A line with fewer than three tokens (including a blank line) ends the
// input: it and every following line are ignored. SkipShortLines switches to
// a skip-and-continue policy instead.
package observation
