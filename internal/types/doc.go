/*
Package types defines core data structures used throughout beeactions.

# Overview

The types package provides shared type definitions for:
  - Shortcut bindings and presets
  - Recorded events
  - Dataset and scan metadata
  - Persisted layout and UI state

# Preset Types

Binding:
  - Action label and key sequence
  - Stable ID used for enable/disable correlation
  - Enabled flag, persisted with the preset

Preset:
  - Filename (base name) and author
  - Ordered bindings; order defines display order
  - SavingOptions, always present even when partly hidden

# Recording Types

Event:
  - Elapsed seconds at activation time
  - Action label
  - Optional subject id

DatasetInfo and ScanInfo:
  - Metadata captured by confirmation dialogs
  - Written as attributes on the container groups
*/
package types
