// Package classify decides whether candidate positions in an audiobook are
// chapter boundaries by transcribing a short snippet at each one and matching
// the text against the configured heading vocabulary.
package classify
