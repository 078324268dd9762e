// Package link runs image transfer cycles over a byte stream.
package link

// A Session owns one open link (serial port, TCP or websocket bridge) and
// drives the request/response cycles on it:
//
//	Idle -> AwaitingHeader -> HeaderDecoded -> Reading|Writing -> Idle
//
// Broken or truncated headers never leave PollRequest; the parser simply
// resynchronizes on the next marker. Payload failures end the current cycle
// only, while a closed or vanished link ends the session.
//
// The protocol is lock-step, so a Session does one thing at a time. Use one
// Session per link.
