//go:build !amd64 && !arm64

package hwy

func init() {
	currentLevel = DispatchScalar
	currentWidth = 16
}
