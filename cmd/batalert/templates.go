package main

// RussianHelpTemplate - шаблон справки для приложения.
const RussianHelpTemplate = `
{{.Name}}: {{.Description}}
Версия: {{.Version}}
{{if .Usage}}Назначение: {{.Usage}}{{end}}

ИСПОЛЬЗОВАНИЕ:
  {{.HelpName}} [глобальные параметры] команда [параметры команды] [аргументы...]

{{if .VisibleCommands}}КОМАНДЫ:{{range .VisibleCategories}}{{if .Name}}
{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{end}}{{end}}
{{end}}{{if .VisibleFlags}}
ПАРАМЕТРЫ:
{{range .VisibleFlags}}  {{.}}
{{end}}{{end}}`

// RussianCommandHelpTemplate - шаблон справки для команды.
const RussianCommandHelpTemplate = `НАЗВАНИЕ:
  {{.HelpName}} - {{.Usage}}
{{if .Description}}
ОПИСАНИЕ:
  {{.Description}}
{{end}}
ИСПОЛЬЗОВАНИЕ:
  {{.HelpName}}{{if .VisibleFlags}} [параметры]{{end}}{{if .ArgsUsage}} {{.ArgsUsage}}{{end}}
{{if .VisibleFlags}}
ПАРАМЕТРЫ:
{{range .VisibleFlags}}  {{.}}
{{end}}{{end}}`

// RussianSubcommandHelpTemplate - шаблон справки для группы команд.
const RussianSubcommandHelpTemplate = `НАЗВАНИЕ:
  {{.HelpName}} - {{.Usage}}
{{if .Description}}
ОПИСАНИЕ:
  {{.Description}}
{{end}}
ИСПОЛЬЗОВАНИЕ:
  {{.HelpName}} команда [параметры]

КОМАНДЫ:{{range .VisibleCategories}}{{if .Name}}
{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{end}}{{end}}
{{if .VisibleFlags}}
ПАРАМЕТРЫ:
{{range .VisibleFlags}}  {{.}}
{{end}}{{end}}`
