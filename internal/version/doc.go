// Package version implements Debian-policy version comparison for package
// build recipes: an "<upstream>-<rev>" string, compared by alternating
// non-digit/digit run according to the same rules dpkg uses for control
// file Version fields.
package version
