// Package checked provides overflow-detecting int64 arithmetic.
//
// Every operation reports overflow through a boolean instead of wrapping.
// Callers turn a false ok into a timeerr overflow error; nothing in this
// module is allowed to produce a silently wrapped seconds or day count.
package checked
