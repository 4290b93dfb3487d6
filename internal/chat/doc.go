// Package chat implements the conversational core: the response parser that
// splits model output into conversational text and structured game data, the
// tool executor backing the GET_ODDS function, the turn orchestrator that
// drives the bounded tool-calling loop, and the preload formatter that
// narrates an already-fetched odds payload without a tool round trip.
//
// Nothing in this package throws past its boundary: every failure mode
// resolves to a renderable Result so the session store can always settle an
// in-flight message.
package chat
