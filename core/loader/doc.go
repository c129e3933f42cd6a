// Package loader provides the feature loading system.
//
// Each feature implements the Feature interface, which reports its name and
// whether it is enabled, and registers its routes on a fiber.Router.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry: Register adds a feature, LoadAll loads every
// enabled one in registration order.
package loader
