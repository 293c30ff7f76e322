// Package cv 提供基于 OpenCV 的模板匹配
//
// 匹配使用归一化相关系数 (TM_CCOEFF_NORMED)，得分范围 [-1, 1]，
// 模板逐像素出现在截图中时接近 1。阈值 0.99 基本等于要求完全一致，
// 0.8 可以容忍轻微的抗锯齿和配色差异。
//
// 基本用法:
//
//	tmpl := cv.NewTemplate("nexus_app_download.png", cv.WithTemplateThreshold(0.99))
//	defer tmpl.Close()
//
//	result, err := tmpl.MatchResultIn(screen)
//	if err != nil {
//	    return err
//	}
//	if result != nil {
//	    fmt.Printf("找到位置: (%d, %d) 置信度 %.3f\n", result.Result.X, result.Result.Y, result.Confidence)
//	}
package cv
