package corpus

import "github.com/nextmile/chatbot/internal/model"

// SampleRecords returns the built-in fallback corpus used when no
// spreadsheet is configured.
func SampleRecords() []model.Record {
	return []model.Record{
		{
			Kind:         model.KindWork,
			Organization: "Baidu Inc.",
			Title:        "AI/ML Engineer",
			Narrative:    "Enhanced the Outline Generation module's performance through a multi-stage data pipeline that included model Supervised fine-tuning (LoRA), log data cleansing and annotation, resulting in an 80% win rate in GSB evaluations. Technologies: LoRA, Data Pipeline, Model Fine-tuning",
		},
		{
			Kind:         model.KindWork,
			Organization: "Baidu Inc.",
			Title:        "AI/ML Engineer",
			Narrative:    "Automated 40% of data annotation tasks by leveraging role-playing prompt engineering on the Deepseek-v3, also optimized 3 evaluation rules salvaging 20+% of data for valuable use. Technologies: Deepseek-v3, Prompt Engineering",
		},
		{
			Kind:         model.KindWork,
			Organization: "Baidu Inc.",
			Title:        "AI/ML Engineer",
			Narrative:    "Accelerated the template update speed of Baidu Wenku's AI PPT Generator by leveraging LLM Fine-Tuning and post processing strategies, achieving 90% stability and enabling the deployment of 300+ templates. Technologies: LLM Fine-Tuning, Post Processing",
		},
		{
			Kind:         model.KindWork,
			Organization: "Baidu Inc.",
			Title:        "AI/ML Engineer",
			Narrative:    "Evaluated the latest LLM models(Deepseek) and applied it to text to tabular data task, achieving 95% accuracy. Technologies: Deepseek, LLM Evaluation",
		},
		{
			Kind:         model.KindWork,
			Organization: "Apple Inc.",
			Title:        "Data Scientist",
			Narrative:    "Leveraged Word Embedding and MiniBatch K-Means to analyze real-time chat data from a newly launched Apple TikTok live-stream, identifying top 10 categories that informed script optimizations and resulted in a 7% reduction in return rate. Technologies: Word Embedding, MiniBatch K-Means, Real-time Data Analysis",
		},
		{
			Kind:         model.KindWork,
			Organization: "Apple Inc.",
			Title:        "Data Scientist",
			Narrative:    "Boosted GenZ viewership by 21.29% and retention by 13.9% on TikTok outdoor live-streams by leveraging A/B testing to optimize content. Technologies: A/B Testing, Content Optimization",
		},
		{
			Kind:         model.KindWork,
			Organization: "Apple Inc.",
			Title:        "Data Scientist",
			Narrative:    "Informed live content strategy by applying Difference in Difference(DID) analysis to Apple's continuous interconnection scenarios, which resulted in a 3% boost in click-through rates and an 8.9% increase in interaction rates. Technologies: Difference in Difference Analysis, Statistical Analysis",
		},
		{
			Kind:         model.KindWork,
			Organization: "Michelin(China) Investment Co. Ltd.",
			Title:        "Information Technology Intern",
			Narrative:    "Automated a reseller sentiment analysis system with 75% accuracy using pre-trained Chinese Word Embedding and BiLSTM on e-commerce comments, leading to a 3.2% increase in sales. Technologies: Chinese Word Embedding, BiLSTM, Sentiment Analysis",
		},
		{
			Kind:         model.KindWork,
			Organization: "Michelin(China) Investment Co. Ltd.",
			Title:        "Information Technology Intern",
			Narrative:    "Extracted 3000+ tire specifications from websites like Tesla and BYD by leveraging a Python Scrapy web crawler, providing crucial market data to inform product strategy for a new electric vehicle tire series. Technologies: Python, Scrapy, Web Crawling",
		},
		{
			Kind:         model.KindWork,
			Organization: "Michelin(China) Investment Co. Ltd.",
			Title:        "Information Technology Intern",
			Narrative:    "Developed a data pipeline and visualization module for SharePoint internal software by integrating and processing unstructured data sources, which drove strategic SKU selection for a new tire launch in the Asia-Pacific region. Technologies: Data Pipeline, SharePoint, Data Visualization",
		},
		{
			Kind:         model.KindProject,
			Organization: "Machine Learning Course",
			Title:        "A Deep Reinforcement Learning Based Stock Automated Trading System",
			Narrative:    "Developed a Deep Deterministic Policy Gradient-based automated trading agent, leveraging advanced data preprocessing to improve annual returns by 10% in backtesting scenarios. Technologies: Deep Reinforcement Learning, DDPG, Data Preprocessing",
		},
		{
			Kind:         model.KindProject,
			Organization: "Undergraduate Research",
			Title:        "Facial Emotion Recognition System",
			Narrative:    "Developed a CNN-based facial emotion classifier with 80% accuracy on the FER-2013 dataset. Integrated the classifier into an interactive PyQt5 system to analyze emotional data and visualize insights. Award: Excellent Award. Technologies: CNN, PyQt5, FER-2013 Dataset, Data Visualization, Emotion Analysis",
		},
	}
}
