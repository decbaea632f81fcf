// Package plugin discovers optional modules advertised under an entry-point
// group and imports them through a module catalog.
package plugin
