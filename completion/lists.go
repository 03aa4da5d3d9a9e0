package completion

var columnTypes = []string{
	"int",
	"bigint",
	"varchar",
	"text",
	"boolean",
	"datetime",
	"timestamp",
	"uuid",
	"float",
	"decimal",
	"json",
	"enum",
}

var tableSectionKeywords = []string{
	"note",
	"indexes",
	"primary key",
	"ref",
}

var attributes = []struct{ label, display string }{
	{"pk", ""},
	{"unique", ""},
	{"not null", ""},
	{"null", ""},
	{"increment", ""},
	{"default: ", "default: …"},
	{"ref", ""},
	{"note", ""},
}

var indexBody = []string{
	"index",
	"unique",
	"(",
	"on",
	"name: ",
	"type: ",
	"note: ",
}

var indexAttributes = []string{
	"name: ",
	"type: ",
	"unique",
	"note",
}

var primaryKeyBody = []string{
	"columns: []",
	"name: ",
	"note: ",
	"type: ",
	"clustered",
}

var noteBody = []string{
	"TODO: ",
	"- ",
	"# ",
}

var tableGroupBody = []string{
	"table ",
	"note: ",
	"color: ",
	"headercolor: ",
}
