package encounter

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина для рельефа платформ
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = 3   // Количество октав
	noiseScale   = 1.0 / 1000
)

// heightNoise генератор высот платформ для одного уровня
type heightNoise struct {
	perlin *perlin.Perlin
}

func newHeightNoise(seed int64) *heightNoise {
	return &heightNoise{perlin: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)}
}

// at возвращает значение шума для координаты x (от 0 до 1)
func (n *heightNoise) at(x float64) float64 {
	// Получаем значение шума (примерно от -1 до 1)
	v := (n.perlin.Noise1D(x*noiseScale) + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return 0.999999
	}
	return v
}

// pick выбирает элемент из heights по шуму в точке x
func (n *heightNoise) pick(x float64, heights []float64) float64 {
	if len(heights) == 0 {
		return 0
	}
	return heights[int(n.at(x)*float64(len(heights)))]
}
