package internal

// Version is the program version reported by --version
const Version = "0.3.0"
