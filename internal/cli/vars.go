package cli

var (
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// serve
	port uint16
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// strength
	interactive bool
)
