package cv

import (
	"gocv.io/x/gocv"
)

// CalRGBConfidence 对两张同大小彩图按通道计算相似度，返回最小通道的置信度
func CalRGBConfidence(imgSrc, imgSearch gocv.Mat) float64 {
	if imgSrc.Rows() != imgSearch.Rows() || imgSrc.Cols() != imgSearch.Cols() {
		return 0
	}
	if imgSrc.Channels() != 3 || imgSearch.Channels() != 3 {
		return calChannelConfidence(imgSrc, imgSearch)
	}

	// 截断到 [10, 245]，降低高光和阴影对相关系数的影响
	srcCropped := cropToValidRange(imgSrc)
	searchCropped := cropToValidRange(imgSearch)
	defer srcCropped.Close()
	defer searchCropped.Close()

	srcChannels := gocv.Split(srcCropped)
	searchChannels := gocv.Split(searchCropped)
	defer func() {
		for _, ch := range srcChannels {
			ch.Close()
		}
		for _, ch := range searchChannels {
			ch.Close()
		}
	}()

	minConfidence := 1.0
	for i := 0; i < len(srcChannels) && i < len(searchChannels); i++ {
		confidence := sanitize(calChannelConfidence(srcChannels[i], searchChannels[i]))
		if confidence < minConfidence {
			minConfidence = confidence
		}
	}
	return minConfidence
}

// cropToValidRange 把像素值截断到 [10, 245]
func cropToValidRange(img gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Threshold(img, &dst, 245, 245, gocv.ThresholdTrunc)
	gocv.Threshold(dst, &dst, 10, 0, gocv.ThresholdToZero)
	return dst
}

// calChannelConfidence 计算单通道置信度
func calChannelConfidence(src, search gocv.Mat) float64 {
	mask := gocv.NewMat()
	defer mask.Close()

	result := gocv.NewMat()
	defer result.Close()

	gocv.MatchTemplate(src, search, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, _ := gocv.MinMaxLoc(result)
	return float64(maxVal)
}
