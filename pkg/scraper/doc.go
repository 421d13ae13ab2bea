// Package scraper crawls a fan club and saves every original image of
// every post.
//
// The crawl is strictly sequential. Page 1 of the listing is fetched to
// learn the number of pages, then each page is walked in order:
//
//	for each listing page 1..max_page
//	    for each post link on the page
//	        fetch the post JSON
//	        for each original image reference
//	            wait for the pacer
//	            resolve the interstitial page to the asset URL
//	            download to {root}/{fan_club_id}/{post_id}_{yyyymmdd}_{hhmmss}/
//
// The first error aborts the run and is returned together with the totals
// collected so far.
//
//	s, err := scraper.New(cfg, log)
//	if err != nil {
//	    return err
//	}
//	summary, err := s.Run(ctx)
package scraper
