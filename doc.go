// Package restrouter dispatches HTTP requests that were already matched to
// a route and decides which representation of the handler's result to send.
//
// A Dispatcher looks up the Route for a request, runs its Handler and, in
// parallel, negotiates a response media type from the Accept header, the
// route's declared Produces set and the media types the SerializerRegistry
// can serialize:
//
//	reg, _ := restrouter.NewRegistry(restrouter.WithSerializer(restrouter.YAML()))
//
//	res := restrouter.NewMuxResolver()
//	res.Handle(http.MethodGet, "/items/{id}", restrouter.NewRoute(getItem,
//	    restrouter.WithProduces("application/json", "application/yaml"),
//	))
//
//	d := restrouter.NewDispatcher(res, reg)
//	http.ListenAndServe(":8080", d)
//
// Negotiation failures never fail the request. The Content-Type is set to the
// registry default and the error goes to the ErrorReporter. Faults returned by
// a Handler are handed back unchanged from Dispatcher.Handle.
//
// Routes created with AsCustom bypass negotiation and serialization entirely;
// the handler writes its own response.
package restrouter
