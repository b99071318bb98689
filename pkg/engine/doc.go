// Package engine serves stand-in HTTP responses.
//
// The Handler is the inbound hook: every request outside the administrative
// prefix is captured by the Recorder and then answered from the route Table.
// A request that matches no enabled route gets a 404 problem document. Requests
// under AdminPrefix are handed to the admin handler unchanged and are not
// captured.
//
// The Server wraps the Handler in an http.Server with read and write timeouts.
//
//	h := engine.NewHandler(table, recorder, engine.WithAdmin(adminAPI))
//	srv := engine.NewServer(engine.ServerConfig{Addr: ":8080"}, h, log)
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop(ctx)
package engine
