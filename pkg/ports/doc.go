/*
Package ports defines the driven ports (interfaces) of the diagram build.

These interfaces decouple the build cycle from the source wiki, the external
rasterizer and sync tools, and the storage of locks and reports.

# Key Interfaces

  - SiteClient: fetches the sitemap and page JSON of the source site.
  - DiagramWriter, Renderer, Publisher: hand DOT text to disk, the rasterizer and the publication host.
  - BuildLocker: keeps build cycles from overlapping.
  - ReportStore, Marker: keep the last report and the "last successful build" time.
*/
package ports
