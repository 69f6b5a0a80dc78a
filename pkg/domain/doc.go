/*
Package domain contains the data model shared by the diagram evaluator and the
reachability checker.

It defines the records fetched from a federated wiki and the per-build
structures derived from them. This package is kept pure and free of I/O, so
adapters (HTTP fetch, subprocesses, storage) depend on it and never the reverse.

# Key Entities

  - SitemapEntry: lightweight catalog record (slug, title, date) from the source site.
  - Page: one fetched page with its ordered Story and optional Journal.
  - StoryItem: a typed content item; unknown attributes are preserved.
  - Mesh: the closed, read-only set of pages for one build cycle, keyed by slug.
  - TroubleLog: violation message to offending page titles.
  - Report: everything a build cycle produces for presentation.
*/
package domain
