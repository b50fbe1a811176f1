// Package cli is the interactive projectboard client.
//
// It keeps the signed-in session in a file, attaches its token to every
// request and drops it when the server answers 401. Commands:
//
//	register, login, logout
//	list, search, show <id>, health
//	mine, create, edit <id>, delete <id>   (signed in)
//	help, exit | quit
//
// App.Run blocks until the user exits or input ends.
package cli
