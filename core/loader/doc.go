// Package loader mounts the application's features on the Fiber app.
//
// A feature is anything with a name, an enabled switch and a Load method that
// registers its routes:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// cmd/start registers the catalog and crawl features with a Manager and calls
// LoadAll once. Disabled features are skipped and logged; the first Load error
// aborts startup.
package loader
