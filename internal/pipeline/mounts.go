package pipeline

// Container-side mount points bound for every build container. The dist
// directory is mounted so target-host makedepends can be installed from
// the in-progress local feed.
const (
	mountSrc  = "/src"
	mountPkg  = "/pkg"
	mountDist = "/repo"
)
