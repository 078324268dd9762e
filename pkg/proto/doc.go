// Package proto provides the image link wire protocol.
package proto

// The image link protocol runs over a half-duplex, point-to-point byte
// stream (typically a serial port) between a host and a microcontroller.
// The device always initiates a cycle with a request frame:
//
//	offset  size  field
//	0       2     marker 'S','T'
//	2       1     direction: 1 = device writes, 2 = device reads
//	3       2     height (pixels)
//	5       2     width (pixels)
//	7       1     format: 1 = grayscale, 2 = RGB565, 3 = RGB888
//
// followed by height*width*bpp(format) payload bytes, sent by whichever
// side the direction names. Multi-byte fields are little-endian.
//
// There is no checksum. A frame that is cut short or carries unknown codes
// is dropped and the receiver goes back to scanning for the marker.
//
// Producer: MCU firmware
// Consumer: host
