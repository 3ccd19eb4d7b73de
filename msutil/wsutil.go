/*
package msutil wires the ms.SessionsHandler/ms.ClientHandler application
interfaces to a recv.Receiver-driven connection loop.

Overview, server side:

	connecter := msutil.NewConnecter(sections, log, 0)
	server := ms.NewServer(addr, connecter, log)
	server.Run(ctx)

Overview, client side:

	client := msutil.NewClient(handler, addr, log, 0)
	client.Run(ctx)

Both loops read raw bytes off the connection and feed them to a
recv.Receiver; on_text/on_binary callbacks are handed to the session as an
io.Reader via ReadDump/ReadPump, and outbound messages are sent through
msutil.Writer, which frames and, on the client side, masks a message's
buffered bytes on Flush.

For more utils and helpers see the documentation.
*/
package msutil
