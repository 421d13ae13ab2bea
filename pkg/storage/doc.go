// Package storage writes downloaded images to the local directory tree.
//
// Files are laid out as
//
//	{root}/{fan_club_id}/{post_id}_{YYYYMMDD}_{HHMMSS}/{filename}
//
// Each save creates the post directory if needed, writes to a temporary
// file in the same directory and renames it over the destination, so a
// re-run silently replaces earlier copies. There is no duplicate
// detection or resume state.
//
// Usage:
//
//	manager, err := storage.NewManager(cfg.Download.RootDirectory, cfg.Fantia.FanClubID)
//	if err != nil {
//	    return err
//	}
//	path, n, err := manager.Save(post.DirName(), "555.png", body)
package storage
