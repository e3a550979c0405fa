// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/pkgtester/pkgtester/cmd/pkgtester"

func main() {
	cmd.Execute()
}
