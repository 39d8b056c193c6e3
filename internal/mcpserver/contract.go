package mcpserver

// RecordFormatContract describes the review record file format that LLM
// consumers should follow when drafting records.
const RecordFormatContract = `# Little Reviews Record Format

Every review is one YAML file in the record store (` + "`content/reviews/`" + `).
The file name without its extension is the review's id.

## Structure

` + "```" + `yaml
title: Blade Runner            # REQUIRED
type: Movie                    # REQUIRED: Movie | TV Show | Book | Music
author: Philip K. Dick         # OPTIONAL; expected for Book (author) and Music (artist)
rating: 4.5                    # REQUIRED: 0 to 5 in steps of 0.5
releaseYear: 1982              # REQUIRED: 1800 to five years from now
reviewDate: 2024-03-01T10:00:00.000Z   # REQUIRED: ISO 8601, set once
updatedDate: 2024-04-02T08:30:00.000Z  # OPTIONAL: set on every edit
text: |                        # REQUIRED: Markdown body
  First paragraph.

  Second paragraph.
` + "```" + `

## Rules

1. The file extension is ` + "`.yaml`" + ` or ` + "`.yml`" + `; other files are ignored.
2. An ` + "`id`" + ` key in the file is ignored. Renaming the file changes the id.
3. ` + "`text`" + ` may also be a YAML list of paragraphs; they are joined with blank lines.
4. ` + "`reviewDate`" + ` never changes after creation. ` + "`updatedDate`" + ` must not be earlier.
5. Files that fail to parse or validate are skipped by the build with a warning.
6. Two files with the same id: the later file name in sorted order wins.

## Authoring

Use the ` + "`draft_review`" + ` tool to produce a file. It never writes to the
record store: save the returned YAML as the returned file name inside the
record store and run ` + "`littlereviews build`" + `.
`
