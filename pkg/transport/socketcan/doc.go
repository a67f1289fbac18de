// Package socketcan implements can.Transport on Linux SocketCAN raw sockets.
package socketcan
