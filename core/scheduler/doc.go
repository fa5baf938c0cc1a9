// Package scheduler triggers the periodic crawl.
//
// It wraps robfig/cron with an explicitly owned instance: New validates the
// expression and timezone, Start begins ticking, Stop cancels the context
// handed to running jobs and waits for them. Overlapping ticks are skipped
// instead of queued. The default fires daily at 09:00 Asia/Kolkata.
package scheduler
