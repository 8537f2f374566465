/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/blobpack/cmd/blobpack/cmd"

func main() {
	cmd.Execute()
}
