// Package arfmt writes the BSD variant of the Unix "ar" archive format
// used by the ipk container: an 8-byte global magic, followed by one
// fixed 60-byte header per member (16-byte name, 12-byte mtime, 6-byte
// uid, 6-byte gid, 8-byte mode, 10-byte size, 2-byte end marker) and the
// member's content padded to an even byte boundary.
package arfmt
