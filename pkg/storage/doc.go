// Package storage keeps the screenshots taken when an unlike action fails.
//
// Files are written atomically through a temporary file and rename, named
// failure-<timestamp>-<seq>.<ext> with the extension sniffed from the image
// bytes, and pruned to the most recent N so a long failing run cannot fill
// the disk.
//
//	manager, err := storage.NewManager(dir, 50)
//	path, err := manager.Capture(ctx, page)
package storage
