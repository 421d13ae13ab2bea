// Package ratelimit paces requests to the fan club site.
//
// The crawler sleeps a fixed number of seconds before resolving each
// original image. FixedDelay implements that as a context-aware Pacer:
//
//	pacer := ratelimit.NewFixedDelay(cfg.Interval())
//	if err := pacer.Wait(ctx); err != nil {
//	    return err // interrupted
//	}
//
// A zero interval disables pacing. Stats reports how many waits happened
// and how long they slept in total.
package ratelimit
