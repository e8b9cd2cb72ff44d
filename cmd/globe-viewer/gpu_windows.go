package main

// Ask hybrid laptops for the discrete GPU.
import _ "github.com/silbinarywolf/preferdiscretegpu"
