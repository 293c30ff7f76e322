package cv

import "fmt"

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rectangle 表示矩形区域（四个角点）
type Rectangle struct {
	TopLeft     Point `json:"top_left"`
	BottomLeft  Point `json:"bottom_left"`
	BottomRight Point `json:"bottom_right"`
	TopRight    Point `json:"top_right"`
}

// Width 矩形宽度
func (r Rectangle) Width() int {
	return r.BottomRight.X - r.TopLeft.X
}

// Height 矩形高度
func (r Rectangle) Height() int {
	return r.BottomRight.Y - r.TopLeft.Y
}

// MatchResult 图像匹配结果
type MatchResult struct {
	// Result 匹配到的中心点坐标
	Result Point `json:"result"`
	// Rectangle 匹配区域的四个角点
	Rectangle Rectangle `json:"rectangle"`
	// Confidence 匹配置信度
	Confidence float64 `json:"confidence"`
	// Time 匹配耗时（毫秒）
	Time float64 `json:"time,omitempty"`
}

func (r *MatchResult) String() string {
	return fmt.Sprintf("(%d, %d) 置信度 %.3f", r.Result.X, r.Result.Y, r.Confidence)
}
