package mcpserver

// ImportFormatContract describes the menu file format accepted by the
// import_menu tool, the HTTP import endpoint and the encode command.
const ImportFormatContract = `# Menushare Import Format

A menu file is YAML (.yaml, .yml), JSON (.json) or an Excel workbook (.xlsx).
Importing replaces the whole menu.

## YAML

` + "```" + `yaml
brand:
  name: Cafe Blue                # shown in the header and in order messages
  slogan: Fresh every morning
  logo_url: https://example.com/logo.png
  phone: "966500000000"          # digits only; enables WhatsApp ordering
  currency: SAR                  # defaults to SAR
theme:
  primary_color: "#007bff"
  font_style: Arial
categories:
  - id: hot                      # optional; generated when missing
    name: Hot drinks             # required
    items:                       # items nested here belong to this category
      - name: Latte              # required
        price: 14.5              # number or text; non-numeric text becomes 0
        description: Double shot
        image: https://example.com/latte.jpg
items:                           # flat items name their category explicitly
  - name: Iced tea
    category_id: hot
    price: 9
` + "```" + `

## JSON

Same structure with the keys of the share payload: ` + "`" + `brandInfo` + "`" + `,
` + "`" + `categories` + "`" + ` (with optional nested ` + "`" + `items` + "`" + `), ` + "`" + `items` + "`" + ` (using
` + "`" + `categoryId` + "`" + `), ` + "`" + `theme` + "`" + `.

## XLSX

- Sheet ` + "`" + `categories` + "`" + ` (required): header row ` + "`" + `id, name` + "`" + `.
- Sheet ` + "`" + `items` + "`" + `: header row ` + "`" + `id, category_id, name, description, price, image` + "`" + `.
- Sheet ` + "`" + `brand` + "`" + `: key/value rows (` + "`" + `name` + "`" + `, ` + "`" + `slogan` + "`" + `, ` + "`" + `logo_url` + "`" + `, ` + "`" + `phone` + "`" + `, ` + "`" + `currency` + "`" + `).
- Sheet ` + "`" + `theme` + "`" + `: key/value rows (` + "`" + `primary_color` + "`" + `, ` + "`" + `font_style` + "`" + `).

## Rules

1. Category ids and item ids must be unique.
2. Category and item names are required.
3. Items whose category does not exist are kept but not shown.
4. Images are URLs or data URIs (data:image/...;base64,...). Data URIs make
   share links long; keep uploads small.
`
