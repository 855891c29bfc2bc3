package app

import (
	"strings"
)

// VERSION is <major>.<year since 2020>.<month>, the build metadata after the +
// is the first day of the release month. Only the part before the + is shown.
const (
	VERSION = "1.6.10+20261001"
	MODULE  = "vdl120"
)

// Version returns module name and release, e.g. "vdl120 V1.6.10".
func Version() string {
	return strings.TrimSpace(MODULE + " V" + strings.Split(VERSION, "+")[0])
}
