// ABOUTME: BSD and Darwin ioctl request codes for reading and writing terminal attributes.
// ABOUTME: TIOCSETAF is the flush variant that discards unread input before applying.

//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import "golang.org/x/sys/unix"

const (
	ioctlGetAttr      = unix.TIOCGETA
	ioctlSetAttr      = unix.TIOCSETA
	ioctlSetAttrFlush = unix.TIOCSETAF

	opGetAttr      = "ioctl(TIOCGETA)"
	opSetAttr      = "ioctl(TIOCSETA)"
	opSetAttrFlush = "ioctl(TIOCSETAF)"
)
