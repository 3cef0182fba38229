// ABOUTME: Linux ioctl request codes for reading and writing terminal attributes.
// ABOUTME: TCSETSF is the flush variant that discards unread input before applying.

//go:build linux

package terminal

import "golang.org/x/sys/unix"

const (
	ioctlGetAttr      = unix.TCGETS
	ioctlSetAttr      = unix.TCSETS
	ioctlSetAttrFlush = unix.TCSETSF

	opGetAttr      = "ioctl(TCGETS)"
	opSetAttr      = "ioctl(TCSETS)"
	opSetAttrFlush = "ioctl(TCSETSF)"
)
