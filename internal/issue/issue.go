// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an Issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a help page shown after a command fails.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

const (
	ConfigLoadFailedId Id = iota + 1
	RootMetadataNotFoundId
	RootMetadataInvalidId
	VendorDirNotFoundId
	SummaryWriteFailedId
	PermissionDeniedId
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue with glamour using the named style ("dark",
// "light", "notty" or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The pkgtester configuration file could not be read or does not match the schema.

## Search locations (in order of precedence):
1. The file passed with ` + "`--config`" + `
2. ` + "`$XDG_CONFIG_HOME/pkgtester/config.cue`" + `
3. ` + "`./pkgtester.cue`" + ` in the root project

## Things you can try:
- Print the effective configuration:
~~~
$ pkgtester config show
~~~

- Write a fresh configuration with the defaults:
~~~
$ pkgtester config init
~~~`,
	}

	rootMetadataNotFoundIssue = &Issue{
		id: RootMetadataNotFoundId,
		mdMsg: `
# No root composer.json found!

pkgtester merges discovered test namespaces into the ` + "`autoload-dev`" + ` table of the
root project, so it needs the root project's metadata file.

## Things you can try:
- Run pkgtester from the directory that holds your composer.json
- Or point it at the project:
~~~
$ pkgtester merge --dir /path/to/project
~~~`,
	}

	rootMetadataInvalidIssue = &Issue{
		id: RootMetadataInvalidId,
		mdMsg: `
# The root composer.json is not valid!

The file could not be decoded, or its ` + "`autoload-dev.psr-4`" + ` table is not a map of
namespaces to a directory or a list of directories.

## Example:
~~~json
{
    "autoload-dev": {
        "psr-4": {
            "App\\Tests\\": "tests/"
        }
    }
}
~~~

## Things you can try:
- Validate the file:
~~~
$ composer validate
~~~`,
	}

	vendorDirNotFoundIssue = &Issue{
		id: VendorDirNotFoundId,
		mdMsg: `
# Vendor directory not found!

There is nothing to discover because the dependency directory does not exist.

## Things you can try:
- Install the dependencies first:
~~~
$ composer install
~~~

- If your project uses a custom vendor directory, set it in the configuration:
~~~cue
vendor_dir: "lib/vendor"
~~~`,
	}

	summaryWriteFailedIssue = &Issue{
		id: SummaryWriteFailedId,
		mdMsg: `
# Failed to write the discovery summary!

The summary of discovered packages could not be saved.

## Things you can try:
- Check that the directory of ` + "`summary_file`" + ` is writable
- Remove a stale summary and retry:
~~~
$ pkgtester summary clear
$ pkgtester merge --save
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to read or write a file pkgtester needs.

## Things you can try:
- Check the permissions of the project and vendor directories
- Run pkgtester as the user that installed the dependencies`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		rootMetadataNotFoundIssue.Id(): rootMetadataNotFoundIssue,
		rootMetadataInvalidIssue.Id():  rootMetadataInvalidIssue,
		vendorDirNotFoundIssue.Id():    vendorDirNotFoundIssue,
		summaryWriteFailedIssue.Id():   summaryWriteFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
