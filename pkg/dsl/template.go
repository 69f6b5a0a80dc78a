package dsl

import "strings"

// DefaultTemplate draws a page, the pages its "Next" paragraphs link to one
// and two hops out, and every page it links to together with their links.
const DefaultTemplate = `DOT strict digraph

  rankdir=TB

  node [style=filled fillcolor=white penwidth=5 color=black fontname="Helvetica-bold"]
  HERE NODE

    node [style=filled fillcolor=white]
    WHERE /^Next/
      LINKS HERE -> NODE
          node [style=filled fillcolor=white]
          HERE NODE
            WHERE /^Next/
              LINKS HERE -> NODE

    node [style=filled fillcolor=white penwidth=3 color=black fontname="Helvetica"]
    LINKS HERE -> NODE
       node [style=filled fillcolor=white penwidth=1 color=black fontname="Helvetica"]
       HERE NODE
         LINKS HERE -> NODE`

// TemplateFor picks the program for a page's graphviz item from DefaultTemplate.
func TemplateFor(itemText string) string {
	return Program(DefaultTemplate, itemText)
}

// Program adapts template to a page's graphviz item. Items mentioning
// "tall" rank left to right instead of top to bottom.
func Program(template, itemText string) string {
	if strings.Contains(itemText, "tall") {
		return strings.Replace(template, "TB", "LR", 1)
	}
	return template
}
