package mcpserver

// NoteFormatContract is the canonical description of the Ansuz note format,
// served both as a tool and as an MCP resource so agents creating notes
// produce files the lifecycle engine can process.
const NoteFormatContract = `# Ansuz Note Format Contract

Every note is a Markdown file with a YAML front matter header:

---
title: Short human title
type: fleeting | literature | permanent
status: inbox | promoted | published | archived
created: 2026-08-23
tags:
  - kebab-case-tag
---

# Heading

Body text. Cross-references use wikilinks: [[Other Note]].

## Lifecycle

- New captures land in the inbox directory with status "inbox".
- Processing enriches a note (summary, suggested tags, quality_score)
  and advances it to "promoted".
- Promotion relocates promoted notes whose quality_score meets the
  vault threshold into their type directory with status "published".
- Orphan remediation archives published permanent notes that have no
  inbound or outbound links.

## Rules

- The header must open and close with "---" lines.
- "created", "processed_date" and "promoted_date" use YYYY-MM-DD.
- "quality_score" is a float in [0, 1].
- Unknown header keys are preserved verbatim; do not rely on key order.
`
