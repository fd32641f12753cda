// Package eventloop runs tasks one at a time on a single goroutine.
//
// Timer callbacks and HTTP completions post tasks here instead of touching
// shared state directly, so every state transition runs alone:
//   - Post never blocks; the mailbox is an unbounded ring buffer
//   - Tasks run in the order they were posted
//   - After Close, Post reports false and the task is dropped
package eventloop
