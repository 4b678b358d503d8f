// Copyright 2026 The ctable Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// ctable is an introspection tool for tablet metadata directories.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	dirname    string
	tabletID   string
	numColumns int
)

var rootCmd = &cobra.Command{
	Use:   "ctable [command] (flags)",
	Short: "tablet metadata introspection tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		createCmd,
		dumpCmd,
	)

	for _, cmd := range []*cobra.Command{createCmd, dumpCmd} {
		cmd.Flags().StringVarP(
			&dirname, "dir", "d", "", "tablet block store directory")
		cmd.Flags().StringVarP(
			&tabletID, "tablet", "t", "", "tablet identifier")
	}
	createCmd.Flags().IntVarP(
		&numColumns, "columns", "c", 1, "schema column count")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
