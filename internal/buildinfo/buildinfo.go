// Package buildinfo exposes values injected at link time, e.g.
//
//	go build -ldflags "-X github.com/dmitrijs2005/urgekeeper/internal/buildinfo.buildVersion=v1.2.0 \
//	  -X github.com/dmitrijs2005/urgekeeper/internal/buildinfo.adminBuild=true"
package buildinfo

import (
	"fmt"
	"io"
	"strconv"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
	adminBuild   = "false"
)

// PrintBuildData writes version, date and commit to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", buildVersion)
	fmt.Fprintf(w, "Build date: %s\n", buildDate)
	fmt.Fprintf(w, "Build commit: %s\n", buildCommit)
}

// AdminBuild reports whether the binary was built with admin tooling enabled.
// Unparseable values count as false.
func AdminBuild() bool {
	v, err := strconv.ParseBool(adminBuild)
	return err == nil && v
}
