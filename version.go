package dig

// Version is overridden at link time with -ldflags "-X github.com/aretw0/dig.Version=...".
var Version = "dev"
