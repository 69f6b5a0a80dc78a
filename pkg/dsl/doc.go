/*
Package dsl implements the diagram language embedded in graphviz items of a
federated wiki page.

A diagram program is an indentation-structured block of lines. Lines that
start with an uppercase word are directives; every other line is copied into
the DOT output verbatim. Indentation nests a block under the line above it.

	DOT strict digraph
	  node [style=filled]
	  HERE NODE
	    WHERE /^Next/
	      LINKS HERE -> NODE

Directives:

  - HERE [NODE [word]]: resolve the subject page and scope the nested block to its story.
    An ELSE line directly after the nested block runs its own block when resolution fails.
  - WHERE /regex/ | WHERE FOLD name | WHERE attr: narrow the story items in scope.
  - LINKS [HERE -> NODE | NODE -> HERE]: emit one edge per [[bracket link]] in scope and
    run the nested block once per linked title.

Evaluation is two-phase per block: literal lines and edges at one level are
emitted in source order first, then nested blocks run in the order they were
queued. Attribute statements therefore always precede the declarations of
deeper levels they are meant to style.
*/
package dsl
