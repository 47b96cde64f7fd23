// Package review implements interactive review sessions.
//
// An owner has at most one session at a time. A session walks a queue of
// card snapshots: due cards in store order for ModeDueReview, or every card
// in a uniformly shuffled order for ModeFullShuffle. Only ModeDueReview
// sessions reschedule cards; each acknowledged or correctly answered card is
// advanced one repetition step through store.CardStore.UpdateSchedule before
// the session moves on.
//
// Operations on the same owner are serialized for their whole duration,
// including the store write. Operations on different owners run in parallel.
package review
