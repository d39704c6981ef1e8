// Package main provides a command-line utility to walk a flattened
// device tree blob and print its node/property structure.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/BlueFalconHD/smoldtb/fdt"
)

func main() {
	showValues := flag.Bool("values", false, "print raw property payload bytes")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: fdtdump [flags] <file.dtb>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	blob, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	tree, err := fdt.Parse(blob, fdt.Ops{
		OnError: func(msg string) { fmt.Fprintf(os.Stderr, "fdt: %s\n", msg) },
	})
	if err != nil {
		log.Fatalf("Failed to parse FDT: %v", err)
	}
	defer tree.Close()

	dumpNode(tree.Root(), 0, *showValues)
}

func dumpNode(n *fdt.Node, depth int, showValues bool) {
	if n == nil {
		return
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "    "
	}

	name := n.Name()
	if depth == 0 {
		name = "/"
	}
	fmt.Printf("%s%s {\n", indent, name)

	for i := 0; ; i++ {
		p := n.Prop(i)
		if p == nil {
			break
		}
		if showValues {
			fmt.Printf("%s    %s = % x\n", indent, p.Name(), p.Bytes())
		} else {
			fmt.Printf("%s    %s (%d bytes)\n", indent, p.Name(), p.Len())
		}
	}

	for c := n.Child(); c != nil; c = c.Sibling() {
		dumpNode(c, depth+1, showValues)
	}

	fmt.Printf("%s}\n", indent)
}
