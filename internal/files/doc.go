// Package files finds base workbooks on disk.
//
// Discovery resolves directories against a base path and returns workbooks
// in name order, which is the order their base periods are chained in when
// files are named by base year:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	bases, err := discovery.FindWorkbooks("")
package files
