package boot

import (
	"github.com/km-arc/goboot/framework/config"
	"github.com/km-arc/goboot/framework/container"
	"github.com/km-arc/goboot/framework/module"
)

// Harvest concatenates the scanners exported by mods, in module order and,
// within a module, in export order. Modules that export none contribute
// nothing.
func Harvest(mods []*module.Module) []container.Scanner {
	var out []container.Scanner
	for _, m := range mods {
		out = append(out, m.Scanners()...)
	}
	return out
}

// AutoPlugins reports whether plugin discovery is enabled in environ (nil
// means the process environment). Discovery stays on unless the control
// variable holds an off value.
func AutoPlugins(environ map[string]string) bool {
	bc, err := config.ParseBoot(environ)
	if err != nil {
		return true
	}
	return bc.AutoPlugins.Enabled()
}
