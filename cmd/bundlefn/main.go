// Command bundlefn is the stock extension runtime. It provides the YAML file
// loader and the print mutators. Projects with their own loaders or mutators
// build their own binary with build.Main.
package main

import (
	"github.com/specialistvlad/bundlefn/build"
	"github.com/specialistvlad/bundlefn/modules/print"
	"github.com/specialistvlad/bundlefn/modules/yamlfiles"
	"github.com/specialistvlad/bundlefn/registry"
)

// modules is the list of modules compiled into the stock binary.
var modules = []registry.Module{
	yamlfiles.Module{},
	print.Module{},
}

func main() {
	build.Main(modules...)
}
