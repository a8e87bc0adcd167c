package serviceimpl

import "fmt"

// generation ใช้ max_tokens / temperature เดียวกันทั้งสองคำสั่ง
const (
	scriptMaxTokens   = 4000
	scriptTemperature = 0.7
)

func generateScriptSystemPrompt(totalDuration, segmentDuration, segmentCount int, style string) string {
	minLen, maxLen := segmentDuration*3, segmentDuration*5
	return fmt.Sprintf(`你是一个专业的视频脚本创作专家。你的任务是根据用户的创意和风格要求，生成一个结构化的视频脚本。

脚本要求：
1. 视频总时长：%[1]d秒
2. 单个片段时长：%[2]d秒
3. 片段数量：%[3]d个
4. 脚本风格：%[4]s

脚本格式要求：
- **必须包含第0帧（开场画面）**：在第一个片段之前，格式为 `+"`第0帧：详细描述开场画面...`"+` 或 `+"`(0:00 - 0:00) 开场画面：...`"+`，描述视频开始前的初始状态或开场画面
- 每个片段必须按照时间范围格式：开始时间-结束时间 内容描述
- 时间格式：0-%[2]ds, %[2]d-%[5]ds, ... 以此类推
- **重要：每个片段的内容描述必须非常详细和具体，能够充分描述%[2]d秒的视频内容**
- **内容长度要求：每个片段的内容描述必须包含%[6]d-%[7]d个汉字，确保内容足够详细**
- **内容详细度要求：** 必须包含具体的动作描述、环境细节、情感表达和视觉元素
- 每个片段的内容描述要生动具体，符合%[4]s的风格特点
- 片段之间要有连贯性，形成完整的故事线
- **禁止使用简单的一句话描述，必须用多个句子详细描述场景、动作、情感等细节**
- **第0帧和第一帧的过渡要求（非常重要）：**
  * 第0帧应该描述开场时的静态或初始状态
  * 第一帧（0-%[2]ds）应该描述从第0帧状态开始的第一个动作或变化
  * 在提示词中明确体现从第0帧到第一帧的视觉过渡和连贯性
- **一致性要求（非常重要）：**
  * 如果在多个片段中出现同一个物品、角色、对象或概念，必须保持完全一致的描述（包括第0帧）
  * 同一物品的颜色、大小、形状、特征等属性在所有片段中必须保持一致
  * 同一角色的名称、外观、特征在所有片段中必须保持一致
  * 同一地点的名称、环境特征在所有片段中必须保持一致

请直接输出脚本内容，不要添加任何解释或说明。`,
		totalDuration, segmentDuration, segmentCount, style, segmentDuration*2, minLen, maxLen)
}

func generateScriptUserPrompt(inspiration string, segmentDuration, segmentCount int) string {
	minLen, maxLen := segmentDuration*3, segmentDuration*5
	return fmt.Sprintf(`请根据以下创意生成视频脚本：

创意：%[1]s

请按照上述格式要求，生成脚本，包括：
1. **第0帧（开场画面）**：描述视频开始前的初始状态或开场画面，必须详细具体，包含场景、人物、环境等细节
2. **%[2]d个片段**：每个片段的内容描述必须非常详细，包含%[3]d-%[4]d个汉字，详细描述场景、动作、情感、视觉元素等，确保能够充分描述%[5]d秒的视频内容。

**特别注意：**
- **第0帧和第一帧的过渡**：第一帧（0-%[5]ds）应该描述从第0帧开始的第一个动作或变化，确保两帧之间的动作和场景自然衔接
- **一致性要求**：同一个物品、角色或对象在所有片段（包括第0帧）中使用完全相同的名称和特征描述，不要使用同义词或不同的表达方式。`,
		inspiration, segmentCount, minLen, maxLen, segmentDuration)
}

const optimizeScriptSystemPrompt = `你是一个专业的视频脚本优化专家。你的任务是根据用户提供的创意描述，对现有脚本进行优化和改进。

优化要求：
1. 保持脚本的原有结构和时间格式
2. 根据创意描述，增强脚本的细节描述和表现力
3. 确保优化后的脚本更加生动、具体、有感染力
4. 保持脚本的连贯性和完整性
5. 使用创意描述中的语言风格和表达方式

请直接输出优化后的脚本内容，不要添加任何解释或说明。保持原有的时间格式（如：0-6s 内容描述）。`

func optimizeScriptUserPrompt(content, creativeDescription string) string {
	return fmt.Sprintf(`请根据以下创意描述优化脚本：

原始脚本：
%s

创意描述（请使用这个描述的语言风格和表达方式来优化脚本）：
%s

请使用创意描述中的语言风格和表达方式，对原始脚本进行优化，使其更加生动、具体、有感染力。保持脚本的原有结构和时间格式。`,
		content, creativeDescription)
}
