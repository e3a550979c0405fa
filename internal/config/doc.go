// SPDX-License-Identifier: MPL-2.0

// Package config loads pkgtester settings using Viper with CUE as the file
// format.
//
// Sources, lowest precedence first: built-in defaults, the CUE config file,
// PKGTESTER_* variables from a .env file in the root project, and
// PKGTESTER_* process environment variables. The config file is the one
// passed explicitly, else config.cue in the user config directory
// ($XDG_CONFIG_HOME/pkgtester on Linux), else pkgtester.cue in the root
// project. Files are validated against the embedded #Config schema.
package config
