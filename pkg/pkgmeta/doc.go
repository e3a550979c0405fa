// SPDX-License-Identifier: MPL-2.0

// Package pkgmeta models the two files a dependency package uses to opt into
// test discovery: its composer.json metadata and its package-tester.json test
// declaration (or the equivalent "extra.package-tester" block).
//
// The JSON in these files is duck-typed: autoload paths may be a string or a
// list, test entries may be a bare path or an object. Every such union is
// resolved once, while decoding, so the rest of the program only ever sees
// the canonical shapes (AutoloadMap, TestSpec, StringList).
package pkgmeta
