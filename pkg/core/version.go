package core

// Version is the flow release written into new graph metadata.
const Version = "0.1.0"
