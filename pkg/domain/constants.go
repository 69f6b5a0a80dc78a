package domain

// Story item types recognised by the diagram driver and the reachability checker.
const (
	ItemParagraph = "paragraph"
	ItemMarkdown  = "markdown"
	ItemGraphviz  = "graphviz"
	ItemHTML      = "html"
	ItemPagefold  = "pagefold"
)
