// Package boot is a drop-in front for container.Init.
//
// Before the container is built, boot:
//
//   - normalizes the caller's modules (a single item or a list of names,
//     handles or values defined by a module) and drops duplicates by name;
//   - unless GOBOOT_AUTO_PLUGINS is "0", "false" or "no", imports every
//     module advertised under the goboot.modules entry-point group and merges
//     it after the caller's modules;
//   - collects the scanners each module exports and appends them to the
//     caller's CustomScanners.
//
// Every other option reaches the container untouched:
//
//	c, err := boot.Init([]string{"example.com/app/services"}, container.Options{
//		Profiles: []string{"prod"},
//	})
package boot
