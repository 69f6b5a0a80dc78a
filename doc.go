/*
Package dig batch-builds Graphviz diagrams for the pages of a federated wiki.

Each build fetches the sitemap and every page of a site, evaluates a small
indentation-structured diagram language against the fetched pages for every
page that carries a graphviz item, writes the resulting DOT text, rasterizes
it with an external renderer and publishes the images. The same pass checks
which titles are linked but missing and which pages cannot be reached from
the root page.

# Diagram language

A program starts with a "DOT [strict ][di]graph" header line. Lines that do
not start with an uppercase letter are copied to the output. Directives walk
the page mesh:

	HERE NODE          emit the subject page as a node
	LINKS HERE -> NODE emit an edge to every linked title
	WHERE /^Next/      keep only story items matching the pattern
	ELSE               run the next block when HERE found no page

Blocks indented under a directive run after everything at the current level,
with the scope the directive established.

# Usage

	client := wiki.New("https://dig.wiki.innovateoregon.org")
	workspace := file.NewWorkspace("data")

	eng := dig.New(client, workspace,
		dig.WithRenderer(process.NewRenderer(process.NewRunner())),
	)

	report, err := eng.Rebuild(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(report.Written), "diagrams written")
*/
package dig
